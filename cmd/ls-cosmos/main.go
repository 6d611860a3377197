// Command ls-cosmos shows sidereal cosmic weather: signs, nakshatra, tithi
// and lunar phase, in the terminal or over HTTP.
package main

func main() {
	Execute()
}
