/*
Package taxwizard is an eligibility questionnaire and form-routing engine for tax registration.

It asks an applicant a short sequence of conditional questions, lets them move backward
and forward through a sequence whose later questions appear or disappear depending on earlier
answers, and finally evaluates a decision table that names the registration forms
(SP01, RF01, OS01, BR01, Residential Property Declaration) the applicant must complete.

# Concept

The engine is stateless. Every operation takes a domain.State and returns a new one,
so the same state can be persisted, replayed or shared across processes. The question
sequence is data: a catalog of questions carrying relevance predicates, filtered on every
step against the answers recorded so far. A history stack of positions drives backward
navigation without losing answers.

A session ends in one of three ways:

  - completed: a RoutingResult names the track and the required forms.
  - blocked: the applicant has no Taxpayer Identification Number. No forms are recommended
    until they go back and change that answer.
  - exited: the applicant went back from the first question.

# Usage

	engine, err := taxwizard.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	session := engine.NewSession(ctx, "session-123")
	for {
		q, ok, err := session.CurrentQuestion(ctx)
		if err != nil || !ok {
			break
		}
		fmt.Println(q.Prompt)
		// read a value, then:
		if err := session.SubmitAnswer(ctx, value); err != nil {
			log.Println(err)
		}
	}
	fmt.Println(session.Result().Result.Forms())

Hosts that serve many applicants (HTTP, MCP, CLI) use the stateless Engine methods with
pkg/session.Manager and a ports.StateStore instead of Session.
*/
package taxwizard
