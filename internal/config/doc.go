// Package config provides configuration parsing for the loadable server.
//
// The configuration is stored in loadable.json. Every field is optional;
// missing values fall back to the defaults in New.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "metricsPath": "/metrics"
//	  },
//	  "loadable": {
//	    "payloadId": "__preloadables__",
//	    "delay": "200ms",
//	    "timeout": "10s",
//	    "preloadOnStart": true
//	  },
//	  "fragments": {
//	    "dir": "fragments"
//	  },
//	  "s3": {
//	    "bucket": "assets",
//	    "prefix": "fragments/",
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
