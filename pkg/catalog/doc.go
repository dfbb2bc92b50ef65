/*
Package catalog holds the ordered list of eligibility questions.

The Default catalog carries the six canonical questions with Go predicates. Catalogs can
also be loaded from YAML, where each question's relevance rule is written as an
expression:

	questions:
	  - id: has-tin
	    prompt: Do you already have a TIN?
	    options:
	      - {value: "yes", label: "Yes"}
	      - {value: "no", label: "No"}
	  - id: register-business
	    prompt: Do you want to register a business?
	    when: is("applicant-type", "sole-proprietor")

Expressions are compiled with expr (default) or CEL (engine: cel). Both see the
answers as a string map in which every question declared so far defaults to "".
*/
package catalog
