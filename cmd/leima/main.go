// Leima - AWS resource tag reconciler
// List. Derive. Tag.
package main

func main() {
	Execute()
}
