package imagegen

import "fmt"

func productPrompt(description string) string {
	return fmt.Sprintf("Create a professional product photoshoot of the following product: %s. "+
		"Use beautiful lighting, soft shadows, and a clean background. "+
		"Make the product stand out with high quality studio lighting and professional styling. "+
		"The image should look like a premium commercial product photograph. "+
		"IMPORTANT: Make sure the product is clearly visible and is the main focus of the image.", description)
}

// editPrompt references the source image by URL; the generations endpoint
// takes no image input.
func editPrompt(imageURL, prompt string) string {
	return fmt.Sprintf("Using this product image as reference (%s), %s. "+
		"Maintain the same product but apply the requested changes.", imageURL, prompt)
}
