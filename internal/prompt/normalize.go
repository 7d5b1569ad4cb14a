package prompt

import "regexp"

// stripCallPattern matches a Jinja expression ending in Python's
// `.strip()` method call, e.g. `message.content.strip()`.
var stripCallPattern = regexp.MustCompile(`([\w\.\[\]'"]+)\.strip\(\)`)

// titleCallPattern matches the analogous `.title()` call.
var titleCallPattern = regexp.MustCompile(`([\w\.\[\]'"]+)\.title\(\)`)
