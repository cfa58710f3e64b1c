package listing

import "fmt"

func ExampleBuilder_Build() {
	b := NewBuilder("https://forum.example.com/search/42/", "Silent")
	fmt.Println(b.Build(nil))

	cursor := "1700000000"
	fmt.Println(b.Build(&cursor))
	// Output:
	// https://forum.example.com/search/42/?q=%2A&c[users]=Silent&o=date
	// https://forum.example.com/search/42/?q=%2A&c[users]=Silent&o=date&c[older_than]=1700000000
}
