// Package testutil provides shared test utilities for recpanel.
//
// # Fixtures
//
// The fixtures.go file provides sample data for testing:
//
//   - SampleReportPlain, SampleReportDecorated - reports with plain and decorated headings
//   - StatusIdle(), StatusRecording(), StatusProcessing() - common remote statuses
//   - StatusWithReport(text) - an idle status carrying a report
//
// # Environment Helpers
//
// The env.go file provides test environment setup:
//
//   - SetupTestDir(t) - creates a temp directory with a .recpanel config
//   - NewFakeBackend(t) - starts an in-process recording service
//   - MustMarshalJSON(t, v), MustUnmarshalJSON(t, data, v)
//   - WriteTestFile(t, base, path, content)
//
// # Assertions
//
// The assertions.go file compares remote statuses by value and checks field
// presence, since status fields are pointers.
//
// # Usage
//
//	func TestSomething(t *testing.T) {
//	    fake, url := testutil.NewFakeBackend(t)
//	    fake.SetState(true, false, "Recording in progress...", "")
//	    // ... point a client at url ...
//	}
package testutil
