// Package scriptwriter implements the third pipeline stage. It turns the
// episode summary into a two-host dialogue script. Every spoken line is
// prefixed with the host's name and a colon, which is the format the voice
// stage and the web player both understand.
package scriptwriter
