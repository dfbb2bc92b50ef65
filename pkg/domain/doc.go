/*
Package domain contains the core types of the eligibility questionnaire.

It defines the question catalog entries, the answer set, the session State with its
navigation history, and the routing results produced when a session completes. This
package is kept pure and free of external dependencies like I/O or persistence.

# Key Entities

  - Question: A catalog entry with options and an optional relevance Predicate.
  - Answers: The selected option token per question id.
  - State: Runtime snapshot of a session (Status, Answers, History stack, Result).
  - RoutingResult: Closed set of track variants (SoleProprietorship,
    PartnershipCorporation, PropertyOnly) listing the forms to complete.
*/
package domain
