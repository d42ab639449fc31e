// Package email sends marketing mail for the engines. PostmarkSender talks to
// the Postmark API; DevSender writes messages to disk for local runs. Bodies
// are templ components rendered with Render.
package email
