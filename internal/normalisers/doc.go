// Package normalisers turns the rich text returned by source APIs into the
// plain text stored in artifact content. Each subpackage handles one markup.
package normalisers
