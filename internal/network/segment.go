package network

// Segment is one ride on one line between two of its stations. Direction is
// whatever From and To say; no order along the line is implied.
type Segment struct {
	LineKey string `json:"lineKey"`
	FromID  string `json:"fromId"`
	ToID    string `json:"toId"`
}

// Key identifies the segment in the geometry cache.
func (s Segment) Key() string {
	return s.LineKey + "_" + s.FromID + "_" + s.ToID
}

// LineName returns the line name part of the segment's line key.
func (s Segment) LineName() string {
	_, name := SplitLineKey(s.LineKey)
	return name
}
