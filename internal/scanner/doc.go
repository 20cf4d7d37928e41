// Package scanner implements live member check-in by QR code.
//
// A Scanner drives one camera through a small state machine:
//
//	Closed → Initializing → Scanning ⇄ Resolving → Success | Failure → Scanning
//	                      ↘ NoCamera
//
// Frames are sampled under a rate limiter, decoded, normalized and checked
// against the member code rule. A valid code is held on screen for
// SuccessDelay before the result callback fires; an invalid one is shown for
// FailureDelay. While a result is on screen further payloads are dropped, and
// a code that was just dispatched is ignored for RepeatHold so that one card
// held in front of the camera produces one check-in.
package scanner
