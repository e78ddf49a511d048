// Package combat resolves one encounter exchange at a time.
//
// Every exchange starts from a player intent (attack, defend, spell, item,
// flee), mutates the character and the active enemy in place, and returns an
// Exchange describing what happened in order. Randomness comes only from the
// injected dice.Roller, so a scripted roller makes every branch reproducible.
//
// Terminal outcomes (victory, flight, defeat) are reported through flags on
// the Exchange; none of them are errors.
package combat
