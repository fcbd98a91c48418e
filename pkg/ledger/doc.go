/*
Package ledger holds the player's resources and knowledge.

Both ledgers are mutated only through named operations attributed to a source string,
so every change can be traced back to the option or action that caused it. Values are
clamped at the ledger boundary and mutations never fail.
*/
package ledger
