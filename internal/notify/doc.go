// Package notify composes and delivers state-change notifications.
//
// Three channels ship by default: SMTP email, a persisted in-app inbox,
// and an optional ntfy-style push topic. The dispatcher fans a single
// composed message out across every recipient and channel, isolating
// failures so one bad address never silences the rest.
package notify
