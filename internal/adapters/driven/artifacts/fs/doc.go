// Package fs stores stage artifacts as files under the workspace
// directory: converted text in converted/, briefs in briefs/. Files are
// named by a content hash prefix, so regenerating an artifact replaces
// the previous one.
package fs
