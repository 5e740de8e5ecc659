package gitops

import "time"

// timeNow is swappable for tests
var timeNow = func() time.Time { return time.Now().UTC() }
