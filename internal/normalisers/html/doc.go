// Package html extracts readable text from HTML fragments such as work item
// descriptions. Scripts, styles and comments are dropped, block elements
// become line breaks and entities are decoded.
package html
