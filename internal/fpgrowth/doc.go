// Package fpgrowth implements FP-Growth frequent itemset mining and
// association rule generation.
//
// A mining pass runs in four steps:
//
//  1. NewUniverse counts item supports and fixes the canonical item order
//     (support descending, first appearance breaking ties). Items below the
//     minimum support are dropped.
//  2. BuildTree inserts every transaction, filtered and sorted canonically,
//     into a prefix tree stored as an index-addressed arena.
//  3. Miner.Mine walks the header table from the least frequent item upward,
//     building a conditional tree per item and recursing, without generating
//     candidates.
//  4. RuleGenerator.Generate splits every frequent itemset into premise and
//     consequence, scores each rule with the pure metric functions, and keeps
//     the top N.
//
// Engine ties the steps together and lowers the support threshold step by
// step until enough rules are found.
package fpgrowth
