// Package partial loads content for a route's partial binding and hands it
// to a Sink, such as a browser connection.
//
// The source is chosen by URL scheme:
//
//	http://, https://  HTTPSource
//	s3://bucket/key    S3Source
//	file:///path       FileSource, relative to its root
//
// Relative URLs are resolved against the loader's base URL first.
//
//	loader := partial.New(sink,
//	    partial.WithBaseURL("file:///"),
//	    partial.WithSource("file", partial.NewFileSource("./partials")),
//	)
//	r := router.New(router.WithPartialLoader(loader))
package partial
