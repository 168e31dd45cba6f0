package render

// Capabilities describes the optional SQL a dialect supports.
type Capabilities struct {
	IfNotExists      bool // CREATE TABLE IF NOT EXISTS
	DropIndexOnTable bool // DROP INDEX name ON table
	NativeBoolean    bool // a real BOOLEAN type rather than an integer
}
