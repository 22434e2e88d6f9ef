// Command persistctl inspects and edits the records persisted slices keep in
// a storage backend.
package main

import "os"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
