// Package postjob builds post-processing jobs and hands them to an Engine.
//
// A dispatch is single-shot: the named operation is located in the group
// tree, one Job is constructed with a fresh ID and the engine result code is
// interpreted (zero means success). Nothing is retried.
package postjob
