// Package render turns settled form snapshots into presentation views and
// defines the Renderer contract implemented by concrete surfaces such as the
// terminal prompt driver.
package render
