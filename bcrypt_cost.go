//go:build !race

package posts

func passwordHashCost() int {
	return 10
}
