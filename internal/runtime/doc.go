// Package runtime implements the Dialog Controller, the client-side state
// machine that turns Answer Service replies into transcript entries and
// disambiguation stages.
package runtime
