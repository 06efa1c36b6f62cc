// Command arenactl builds arena document trees from HTML files and URLs and
// reports on their shape and integrity.
package main

func main() {
	execute()
}
