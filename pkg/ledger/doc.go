// Package ledger maintains the link records between users, passwords and
// groups.
//
// Every multi-step mutation is expressed as an ordered list of Steps and
// applied with Transaction.Run, which executes them inside a single database
// transaction. Either every step commits or none does.
//
//	p := &model.Password{ID: id}
//	err := ledger.NewTransaction(db, logger).Run(ctx,
//	    ledger.DetachPasswordUsers(p),
//	    ledger.DetachPasswordGroups(p),
//	    ledger.DeletePassword(p),
//	)
//
// Step constructors take model pointers and read their IDs when the step is
// applied, so a step may refer to a row created by an earlier step of the
// same run.
package ledger
