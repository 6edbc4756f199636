// Command davizctl is the operator companion to the daviz server: it manages
// signer keys, derives record addresses offline and mints signer tokens.
package main

func main() {
	Execute()
}
