// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"

	"github.com/SoftbearStudios/heightmap/config"
	"github.com/SoftbearStudios/heightmap/server"
	"github.com/SoftbearStudios/heightmap/server/cloud"
	"golang.org/x/net/netutil"
)

func main() {
	var (
		configPath     string
		logPath        string
		port           int
		maxConnections int
	)

	flag.StringVar(&configPath, "config", "", "json config file (defaults if empty)")
	flag.StringVar(&logPath, "log", "", "csv file to append debug stats to")
	flag.IntVar(&port, "port", 0, "http service port (overrides config)")
	flag.IntVar(&maxConnections, "max-connections", 0, "maximum number of inbound TCP connections (overrides config)")
	flag.Parse()

	conf, err := config.Load(configPath)
	if err != nil {
		log.Fatal("config: ", err)
	}
	if port != 0 {
		conf.Port = port
	}
	if maxConnections != 0 {
		conf.MaxConnections = maxConnections
	}
	if err = conf.Validate(); err != nil {
		log.Fatal("config: ", err)
	}

	var c server.Cloud

	c, err = cloud.New()
	if err != nil {
		// Presets are kept in memory without cloud, just log an error
		log.Printf("Cloud error: %v\n", err)

		c = &server.Offline{}
	}

	hub, err := server.NewHub(server.HubOptions{
		Cloud:   c,
		Config:  conf,
		LogPath: logPath,
	})
	if err != nil {
		log.Fatal("hub: ", err)
	}

	go hub.Run()

	log.Printf("heightmap server started on http://localhost:%d\n", conf.Port)

	http.HandleFunc("/", hub.ServeIndex)
	http.HandleFunc("/ws", hub.ServeSocket)
	http.HandleFunc("/terrain.png", hub.ServeImage)
	http.HandleFunc("/terrain.obj", hub.ServeOBJ)

	l, err := net.Listen("tcp", fmt.Sprint(":", conf.Port))

	if err != nil {
		log.Fatalf("Listen: %v", err)
	}
	defer l.Close()

	l = netutil.LimitListener(l, conf.MaxConnections)

	log.Fatal("ListenAndServe: ", http.Serve(l, nil))
}
