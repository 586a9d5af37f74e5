// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/untalcamilomedina/proyecto-semilla-sub002/cmd"

func main() {
	cmd.Execute()
}
