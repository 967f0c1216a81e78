/*
Package console implements the interactive read-eval loop.

The robot lives in process memory for the lifetime of the Console. How replies
reach the user is decided by a Display: PlainDisplay prints them as they
happen, GridDisplay redraws the table before every prompt and shows the last
reply underneath.
*/
package console
