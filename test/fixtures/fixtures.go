// Package fixtures provides HTML test fixtures for testing the extraction pipeline.
package fixtures

import (
	"fmt"
	"strings"
)

// BaseURL is the forum origin used by every fixture.
const BaseURL = "https://forum.example.com"

// ThreadURL is the canonical URL of the fixture thread.
const ThreadURL = BaseURL + "/threads/summer-photos.4242/"

// GenerateThreadPage creates page 1 of a three page thread with two posts.
// The first post carries a full author sidebar, an inline image duplicated by
// an image link, social and internal links, an iframe and a reactions bar with
// "and N others". The second post has no author sidebar, an explicit
// attachment, a lazy-loaded player and a numeric reactions summary.
func GenerateThreadPage() string {
	return `
<!DOCTYPE html>
<html>
<head><title>Summer photos | Example Forum</title></head>
<body>
<div class="p-title">
    <h1 class="p-title-value"><a href="/forums/?prefix_id=3" class="labelLink"><span class="label">Photos</span></a>Summer photos</h1>
</div>
<div class="p-description">
    <a href="/members/alice.42/" class="username">Alice</a>
    <time class="u-dt" datetime="2024-06-01T09:30:00+0000">Jun 1, 2024</time>
</div>
<div class="tagList">
    <a href="/tags/summer/" class="tagItem">summer</a>
    <a href="/tags/beach/" class="tagItem">beach</a>
</div>
<nav class="pageNav">
    <ul class="pageNav-main">
        <li class="pageNav-page pageNav-page--current"><a href="/threads/summer-photos.4242/">1</a></li>
        <li class="pageNav-page"><a href="/threads/summer-photos.4242/page-2">2</a></li>
        <li class="pageNav-page"><a href="/threads/summer-photos.4242/page-3">3</a></li>
    </ul>
    <a href="/threads/summer-photos.4242/page-2" class="pageNav-jump pageNav-jump--next">Next</a>
</nav>
<div class="block-body js-replyNewMessageContainer">
<article class="message message--post" data-content="post-101" id="js-post-101">
    <div class="message-inner">
        <div class="message-cell message-cell--user">
            <section class="message-user">
                <h4 class="message-name"><a href="/members/alice.42/" class="username" data-user-id="42">Alice</a></h4>
                <h5 class="userTitle message-userTitle">Well-known member</h5>
                <div class="message-userExtras">
                    <dl class="pairs"><dt>Messages</dt><dd>1,234</dd></dl>
                    <dl class="pairs"><dt>Reaction score</dt><dd>567</dd></dl>
                    <dl class="pairs"><dt>Location</dt><dd>Lisbon</dd></dl>
                    <dl class="pairs"><dt>Points</dt><dd>89</dd></dl>
                </div>
            </section>
        </div>
        <div class="message-cell message-cell--main">
            <header class="message-attribution">
                <time class="u-dt" datetime="2024-06-01T09:30:00+0000">Jun 1, 2024</time>
            </header>
            <div class="message-content">
                <div class="bbWrapper">Hello <b>everyone</b>,
                    here are my photos.
                    <a href="https://twitter.com/alice_shoots" class="link link--external">my twitter</a>
                    <a href="/threads/winter-photos.4100/" class="link link--internal">winter thread</a>
                    <a href="#post-101">anchor</a>
                    <a href="javascript:void(0)">script</a>
                    <iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0"></iframe>
                    <img class="bbImage" src="https://img.example.net/photos/sunset.jpg" alt="sunset.jpg">
                    <a href="https://img.example.net/full/sunset.jpg"><img src="https://img.example.net/thumb/sunset.jpg" alt="sunset.jpg"></a>
                    <a href="https://img.example.net/full/dunes.png"><img src="https://img.example.net/thumb/dunes.png" alt="dunes.png"></a>
                </div>
            </div>
            <div class="reactionsBar js-reactionsList is-active">
                <a href="/posts/101/reactions" class="reactionsBar-link"><bdi>Bob</bdi>, <bdi>Carol</bdi> and 11 others</a>
            </div>
        </div>
    </div>
</article>
<article class="message message--post" id="post-102">
    <div class="message-inner">
        <div class="message-cell message-cell--main">
            <header class="message-attribution">
                <time class="u-dt">Yesterday at 5:00 PM</time>
            </header>
            <div class="message-content">
                <div class="bbWrapper">Report attached.
                    <a href="/attachments/report-pdf.555/" class="file-preview">report.pdf</a>
                    <div onclick="loadMedia(this, 'https://www.redgifs.com/ifr/calmwaves')"><div class="iframe-wrapper-redgifs"></div></div>
                    <a href="https://www.instagram.com/alice.shoots/">insta</a>
                    <a href="https://twitter.com/alice_shoots/">twitter again</a>
                </div>
            </div>
            <div class="reactionsBar">42 people liked this</div>
        </div>
    </div>
</article>
</div>
</body>
</html>
`
}

// GeneratePostPage creates a later thread page whose posts are numbered
// page*100+1 .. page*100+count.
func GeneratePostPage(page, count int) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Summer photos</title></head><body>`)
	for i := 1; i <= count; i++ {
		id := page*100 + i
		fmt.Fprintf(&b, `
<article class="message message--post" data-content="post-%d">
    <section class="message-user"><a href="/members/user%d.%d/" class="username">user%d</a></section>
    <time datetime="2024-06-%02dT12:00:00+0000">Jun %d, 2024</time>
    <div class="bbWrapper">Post %d on page %d <a href="https://twitter.com/alice_shoots">tw</a></div>
</article>`, id, id, id, id, page, page, i, page)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// GenerateEmptyPage creates a page with no post containers.
func GenerateEmptyPage() string {
	return `<!DOCTYPE html><html><head><title>Oops</title></head><body><p>Nothing here.</p></body></html>`
}

// GenerateChallengePage creates an anti-bot interstitial.
func GenerateChallengePage() string {
	return `<!DOCTYPE html><html><head><title>Just a moment...</title></head>
<body><div id="challenge">Checking your browser before accessing the site.</div></body></html>`
}

// GeneratePageJumpOnly creates a page whose only pagination marker is the
// page-jump input.
func GeneratePageJumpOnly(max int) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><body>
<h1 class="p-title-value">Jump only</h1>
<input type="number" class="input js-pageJumpPage" min="1" max="%d" value="1">
</body></html>`, max)
}

// GenerateForumListing creates a forum index page with thread links.
func GenerateForumListing() string {
	return `<!DOCTYPE html><html><body>
<div class="structItem-title"><a href="/threads/first.1/">First</a></div>
<div class="structItem-title"><a href="/forums/general.2/">Not a thread</a></div>
<div class="structItem-title"><a href="/threads/second.2/">Second</a></div>
<div class="structItem-title"><a href="https://forum.example.com/threads/third.3/">Third</a></div>
</body></html>`
}

// Padding returns filler markup to push a rendered page over the minimum
// content length.
func Padding(n int) string {
	return "<!-- " + strings.Repeat("x", n) + " -->"
}
