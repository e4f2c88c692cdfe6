// Package config provides configuration parsing for Routra projects.
//
// The configuration is stored in routra.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "debug": false,
//	  "templateDir": "app",
//	  "dispatch": {
//	    "defaultApp": "homepage",
//	    "defaultPage": "index",
//	    "defaultFunction": "process",
//	    "hooksEnabled": true,
//	    "maxRedirects": 0
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000
//	  },
//	  "static": {
//	    "dir": "public",
//	    "prefix": "/static/"
//	  },
//	  "dev": {
//	    "watch": ["app"],
//	    "hotReload": true
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
//	fmt.Println("Address:", cfg.Address())
package config
