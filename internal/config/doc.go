// Package config provides configuration parsing for the hostbridge CLI.
//
// The configuration is stored in hostbridge.json, or in a TOML file when
// the path ends in ".toml". This package handles loading, saving, and
// validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "demo": "box",
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "blink": {
//	    "interval": "1s"
//	  },
//	  "inspect": {
//	    "addr": "localhost:7070"
//	  },
//	  "snapshot": {
//	    "stdout": false,
//	    "s3": {
//	      "bucket": "render-snapshots",
//	      "prefix": "box/",
//	      "region": "us-east-1"
//	    }
//	  }
//	}
//
// The same file in TOML:
//
//	demo = "box"
//
//	[log]
//	level = "debug"
//
//	[inspect]
//	addr = "localhost:7070"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Demo:", cfg.Demo)
package config
