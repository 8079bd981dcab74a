package fileops

// FreeName exposes freeName to the external tests
var FreeName = freeName
