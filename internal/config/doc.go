// Package config loads fragment.json, the configuration of the fragment
// server.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "wsPath": "/ws",
//	    "static": "public",
//	    "allowedOrigins": ["app.example.com"]
//	  },
//	  "router": {
//	    "strict": false
//	  },
//	  "partials": {
//	    "baseURL": "file:///",
//	    "timeout": "5s",
//	    "root": "partials",
//	    "s3": {"region": "eu-west-1"}
//	  },
//	  "routes": [
//	    {"pattern": "/user/:id", "target": "#main", "url": "user.html"}
//	  ],
//	  "telemetry": {
//	    "metrics": true,
//	    "tracing": false
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
