// Package alias provides path aliases: short names starting with "@" that
// stand for filesystem paths or URLs.
//
// # Defining
//
//	r := alias.New()
//	r.Set("@yii", "/yii/framework")
//	r.Set("@yii/gii", "/yii/gii")     // nested alias under the same root
//	r.Set("@tii", "@yii/test")        // resolved now: "/yii/framework/test"
//	r.Remove("@yii")                  // "@yii/gii" is kept
//
// # Resolving
//
//	p, err := r.Get("@yii/gii/file")  // "/yii/gii/file" (longest prefix wins)
//	p, ok  := r.Lookup("@missing")    // "", false
//	key, _ := r.Root("@yii/gii/file") // "@yii/gii"
//
// Anything not starting with "@" is returned by Get as is. Unknown aliases
// fail with *InvalidAliasError ("Invalid path alias: @missing"), which
// matches ErrInvalidAlias under errors.Is.
//
// The registry never touches the filesystem.
package alias
