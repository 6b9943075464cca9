// Package models provides the data structures shared by the extractor, the
// normalizer, the sinks and the API.
package models
