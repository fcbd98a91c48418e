/*
Package strategy implements the strategic actions a player can invoke mid-conversation.

A strategic action is a meta-move outside the authored option graph: it rewrites the
visible option set or redirects the conversation to an alternate stage. Four kinds exist
(reframe, extrapolate, boast, synthesis); each has exactly one Handler in a Handlers set,
resolved through an exhaustive switch so the set of kinds is checked at compile time.

Handlers are pure: they receive a Request describing the live stage and return an Outcome.
Applying the Outcome to a session is the dispatcher's job (see the runtime package).

The package also provides Enhance, the display-only decoration of options while an action
is armed but not yet committed.
*/
package strategy
