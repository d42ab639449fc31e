package audit_test

import (
	"context"
	"fmt"
	"os"

	"github.com/furfolio/enginekit/pkg/audit"
	"github.com/furfolio/enginekit/pkg/auditctx"
	"github.com/furfolio/enginekit/pkg/metadata"
)

func ExampleRecorder() {
	session := auditctx.NewSession()
	session.Login("groomer", "staff-7")

	rec, err := audit.NewRecorder("PupdateEngine", audit.NopSink{},
		audit.WithCapacity(20),
		audit.WithSession(session),
	)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	rec.RecordEvent(ctx, "AnalysisStarted", metadata.Map{"photo": metadata.String("p-1")})
	rec.RecordEvent(ctx, "Owner asked to delete photo", nil)

	for _, e := range rec.FetchRecentEvents() {
		fmt.Println(e.Text, e.Role, e.Escalate)
	}
	fmt.Println(rec.DiagnosticsSummary())

	// Output:
	// AnalysisStarted groomer false
	// Owner asked to delete photo groomer true
	// PupdateEngine: 2 recent events (test mode: false)
}

func ExampleNullSink() {
	sink := audit.NewNullSink(true, audit.WithWriter(os.Stdout))
	_ = sink.LogEvent(context.Background(), audit.Event{
		Text:      "BadgeAwarded",
		Metadata:  metadata.Map{"badge": metadata.String("gold")},
		Role:      "admin",
		StaffID:   "s-1",
		Subsystem: "BadgeEngine",
	})

	// Output:
	// [TEST] BadgeAwarded | metadata=[badge:gold] | role=admin | staffID=s-1 | context=BadgeEngine | escalate=false
}
