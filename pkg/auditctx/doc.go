// Package auditctx carries the (role, staff ID, subsystem) triple that is
// stamped onto every audit event.
//
// An identity reaches the recorder in one of two ways. It can be attached per
// call with WithIdentity, or it can be held by a Session that the
// authentication layer updates on login and logout. A Resolver combines the
// two with the subsystem name fixed for an engine:
//
//	session := auditctx.NewSession()
//	session.Login("groomer", "staff-7")
//
//	r := auditctx.NewResolver("BadgeEngine", session)
//	id := r.Resolve(ctx) // {groomer staff-7 BadgeEngine}
package auditctx
