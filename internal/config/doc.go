// Package config provides configuration parsing for uicli projects.
//
// The configuration is stored in an optional uicli.json at the project root.
// The file may contain // and /* */ comments and trailing commas. When no
// uicli.json exists, the working directory is the project root and every
// field takes its default.
//
// # Configuration File Structure
//
//	{
//	  // Component library base URL (https://, s3:// or file://)
//	  "registry": "https://raw.githubusercontent.com/shivamsaksham/ui-comp-test/main",
//	  "timeout": "30s",
//	  "paths": {
//	    "components": "src/components/ui",
//	    "utils": "src/utils",
//	    "app": "src/app",
//	  },
//	  "tailwind": {
//	    "config": "tailwind.config.js"
//	  },
//	  "packageManager": "pnpm",
//	  "s3": {
//	    "region": "eu-west-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Components:", cfg.ComponentsPath())
package config
