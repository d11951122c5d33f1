package engine

const (
	msgWelcome          = "👋 Hi! I download videos and music from YouTube, VK, Rutube and TikTok.\n\nChoose an option below 👇"
	msgChooseOption     = "Choose an option from the menu 👇"
	msgFarewell         = "Cancelled. Send /start whenever you need me again 👋"
	msgSessionReset     = "⚠️ Something went wrong with your session, so it was reset. Let's start over 👇"
	msgStoreUnavailable = "⚠️ The bot is having trouble right now. Please try again in a minute."

	msgSendURL          = "Send me a link 🔗 (YouTube, VK, Rutube or TikTok)"
	msgSendURLs         = "Send several links separated by commas.\n\nExample:\nhttps://youtu.be/abc, https://vk.com/video-1_2"
	msgEmptyInput       = "The message is empty. Please send some text ✍️"
	msgUnsupportedLink  = "❌ This link is not supported. Send a YouTube, VK, Rutube or TikTok link."
	msgUnsupportedCmd   = "This action is not available for this link. Pick one of the buttons 👇"
	msgChooseAction     = "Choose an action 👇"
	msgFetchingFormats  = "🔎 Looking up available qualities..."
	msgNoFormats        = "😕 No downloadable qualities were found for this video."
	msgChooseQuality    = "Choose a quality 👇"
	msgChooseStory      = "Choose the story quality 👇 (recommended: %s)"
	msgNoStoryQualities = "😕 This story has no downloadable video. Photo stories are not supported."
	msgInvalidChoice    = "❌ There is no such option. Pick one of the buttons 👇"
	msgDownloading      = "⏳ Downloading, please wait..."
	msgDone             = "Download complete ✅ What next?"
	msgTooLarge         = "📦 The file is %s, which is over the %s upload limit. Try a lower quality."
	msgDeliveryFailed   = "❌ The file was downloaded but could not be sent. Please try again."
	msgExtraction       = "❌ Could not download this link. It may be private, removed or region locked."
	msgTimeout          = "⌛ The request took too long and was stopped. Please try again."

	msgEnterQuery      = "What should I search for? 🔍"
	msgEnterMusicQuery = "Enter a song or artist name 🎧"
	msgNothingFound    = "Nothing found 🤷 Try another query."
	msgSearchFailed    = "❌ Search is unavailable right now."
	msgSearchResults   = "🔍 Results for \"%s\":\n\n%s\nPick a number 👇"
	msgInvalidNumber   = "❌ Send a number from 1 to %d."
	msgMusicResults    = "🎧 Results for \"%s\" (page %d/%d). Tap a track to download it."
	msgMusicPage       = "🎧 Page %d/%d. Tap a track to download it."
	msgSessionExpired  = "This menu has expired. Start a new search."
	msgTrackDownload   = "⏳ Downloading the track..."

	msgWriteDeveloper = "Write your message for the developer ✍️"
	msgDeveloperSent  = "✅ Your message was sent to the developer. Thank you!"
	msgDeveloperFail  = "❌ Could not deliver your message right now."
	msgFromUser       = "📨 Message from %s (id %d):\n\n%s"

	msgQueueStart    = "📥 Processing %d links one by one..."
	msgQueueItem     = "▶️ %d/%d: %s"
	msgQueueItemFail = "❌ %s: %s"
	msgQueueDone     = "All links processed ✅"

	msgMetadata = "🎬 %s\n👤 %s\n👁 %s views  👍 %s likes\n\nChoose an action 👇"

	placeholderTitle    = "Title unavailable"
	placeholderUploader = "Unknown author"
	placeholderCount    = "n/a"
)
