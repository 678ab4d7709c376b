/*
Package ngram provides a small toolkit for building fixed-order, word-level
n-gram language models from plain text and generating text from them.

A corpus directory is loaded with LoadCorpus, normalized with a Tokenizer and
counted into a Model with Build. Generation is driven by a Generator, which
repeatedly asks a Sampler for a frequency-weighted next word given the last
order-1 words. Models can also be held in SQLite through SQLStore; both
implement the Chain interface used by the Generator.
*/
package ngram
