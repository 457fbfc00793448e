package features

import "strconv"

// Syscalls names the tracked system calls in feature order. The first five are the
// common ones every process makes; dimensions 10 and above are rarely seen in benign
// workloads.
var Syscalls = []string{
	"read", "write", "open", "close", "fork",
	"mmap", "stat", "lseek", "brk", "ioctl",
	"ptrace", "setuid", "chmod", "socket", "connect",
	"execve", "kill", "mount", "unlink", "init_module",
}

// NumSyscalls is the default dimensionality of a syscall frequency profile.
var NumSyscalls = len(Syscalls)

// Names returns feature names for a d-dimensional vector, falling back to
// positional names beyond the syscall table.
func Names(d int) []string {
	names := make([]string, d)
	for i := range names {
		if i < len(Syscalls) {
			names[i] = Syscalls[i]
		} else {
			names[i] = "f" + strconv.Itoa(i)
		}
	}
	return names
}
