package main

import (
	"strings"

	"gopkg.in/ini.v1"
)

type Config struct {
	Interface     string
	Channel       string
	Protocols     []string
	ShowTimestamp bool
	LogLevel      string
}

func defaultConfig() Config {
	return Config{
		Interface: "socketcan",
		Channel:   "can0",
		Protocols: []string{"ssp", "kefex", "canopen"},
		LogLevel:  "info",
	}
}

// LoadConfig reads an INI configuration, source may be a path or raw
// bytes. Missing keys keep their default value.
//
//	[can]
//	interface = socketcan
//	channel = can0
//	[monitor]
//	protocols = ssp,kefex,canopen
//	show_timestamp = true
//	[log]
//	level = debug
func LoadConfig(source any) (Config, error) {
	config := defaultConfig()
	file, err := ini.Load(source)
	if err != nil {
		return config, err
	}
	canSection := file.Section("can")
	config.Interface = canSection.Key("interface").MustString(config.Interface)
	config.Channel = canSection.Key("channel").MustString(config.Channel)

	monitorSection := file.Section("monitor")
	if monitorSection.HasKey("protocols") {
		config.Protocols = splitList(monitorSection.Key("protocols").String())
	}
	config.ShowTimestamp = monitorSection.Key("show_timestamp").MustBool(config.ShowTimestamp)

	config.LogLevel = file.Section("log").Key("level").MustString(config.LogLevel)
	return config, nil
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
