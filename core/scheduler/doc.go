// Package scheduler computes how many minutes a monitor sleeps before its next
// poll. The default target-seeking policy wakes up shortly before the alert
// window opens; the gap-averaging policy reproduces the older behaviour of
// sleeping for the mean headway minus a buffer.
package scheduler
