// Package logger provides structured logging for webhost applications
// using zerolog.
//
// A service logger is assembled with a Builder that tags every entry with
// the domain and application name, prefixes messages with configured titles,
// masks blacklisted fields, and optionally fans out to Seq and Splunk sinks.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  title_prefixes: ["billing"]
//	  blacklist: ["password", "authorization"]
//	  seq:
//	    url: "http://seq:5341"
//
// # Usage
//
//	log := logger.Get("communication")
//	log.Info("request completed", logger.Fields("status", 200))
package logger
