// Package process provides the runtime that launches the player as a local
// child process.
//
// On Unix the child is placed in its own process group. A close request is a
// SIGTERM delivered to the whole group and a kill is a SIGKILL to the group, so
// helpers the player forks do not outlive it.
//
// On Windows there is no signal the player listens for. A close request posts
// WM_CLOSE to every top-level window owned by the child, which is what closing
// the player window by hand does. A console-only child has no window and
// ignores the request; the caller's timeout then ends in TerminateProcess,
// which only reaches the direct child.
package process
