package functions

// Output is a raw function response. Huma writes []byte bodies as-is.
type Output struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}
