package taxwizard

// Version is the release of the engine, overridden at build time via -ldflags.
var Version = "0.1.0-dev"
