// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

//go:build !unix

package service

import "os"

var refreshSignals []os.Signal
