package daemon

import "regexp"

// commandPattern matches the chat command that asks for a tag update
// run. The service word is optional, so "update tags", "update aws
// tags", "update ec2 tags", and "update instance tags" all trigger.
var commandPattern = regexp.MustCompile(`(?i)update( aws| ec2| instance)? tags`)

// IsTagUpdateCommand reports whether a chat message asks for a tag
// update run. Matching is case-insensitive and the command may be
// embedded in a longer sentence.
func IsTagUpdateCommand(text string) bool {
	return commandPattern.MatchString(text)
}
