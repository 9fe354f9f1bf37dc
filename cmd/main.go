/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package main

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/printflow/scheduler/pkg/server"
)

func main() {
	s, err := server.NewServer()
	if err != nil {
		fmt.Println("failed to new server: " + err.Error())
		os.Exit(1)
	}
	if err = s.Start(); err != nil {
		klog.ErrorS(err, "server exited with error")
		os.Exit(1)
	}
}
