// Package mail abstracts outbound transactional email for the activation flow.
//
// The [Dispatcher] interface is what the Engine depends on; the Resend-backed
// implementation is the default transport. Swapping providers means writing a
// new implementation and changing one constructor call.
//
// # What this package must NOT do
//
//   - Import any other authcore package.
//   - Decide when mail is sent (the Engine does).
package mail
