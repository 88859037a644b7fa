// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

//go:build unix

package service

import (
	"os"
	"syscall"
)

var refreshSignals = []os.Signal{syscall.SIGUSR1}
