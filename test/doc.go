// Package test provides infrastructure for end-to-end testing of appian-deploy.
//
// A Suite runs the real API client against a mock deployment-management API
// served in-process by fiber, next to a fresh operation history database.
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    s := test.NewSuite(t)
//	    defer s.Cleanup()
//
//	    resp, err := s.APIClient.Deploy(s.Context(), req, files)
//	    // Use s.MockAPI to script statuses and inspect submissions
//	}
package test
