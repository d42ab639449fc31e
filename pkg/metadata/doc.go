// Package metadata defines the typed key/value payload attached to audit events.
//
// A Value holds exactly one of a string, a number, a bool or a nested Map.
// Every Value has a canonical string form, which escalation policies search and
// console sinks print:
//
//	md := metadata.Map{
//		"owner":  metadata.String("o-42"),
//		"visits": metadata.Int(12),
//		"vip":    metadata.Bool(true),
//	}
//	fmt.Println(md) // [owner:o-42 vip:true visits:12]
//
// Values marshal to plain JSON, so a Map can be stored by any backend that
// accepts JSON documents.
package metadata
