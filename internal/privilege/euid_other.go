//go:build !unix

package privilege

func geteuid() int { return -1 }
