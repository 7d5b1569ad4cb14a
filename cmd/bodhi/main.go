// Command bodhi runs GenerativeAI LLMs locally and serves them through an
// OpenAI compatible REST API.
package main

func main() {
	Execute()
}
