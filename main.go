// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/jlproject/jlproject/cmd/jlproject"

func main() {
	cmd.Execute()
}
