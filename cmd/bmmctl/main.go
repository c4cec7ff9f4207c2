// Command bmmctl creates, inspects and exercises fixed-block pool files.
package main

func main() {
	execute()
}
