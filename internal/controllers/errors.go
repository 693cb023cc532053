package controllers

import "errors"

var errNoSnapshot = errors.New("no snapshot published yet")
